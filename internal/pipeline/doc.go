// Package pipeline implements the nodes that turn an SRS document into a
// FastAPI project and wires them into a workflow graph.
//
// The default order is project_initializer, srs_parser, test_generator,
// code_generator, debugger and documentation_generator. Each node appends a
// success line to the run logs; a failing node records the failure in both
// the errors and the logs and routes the run to the error handler.
package pipeline

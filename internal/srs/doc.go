// Package srs turns Software Requirements Specification documents into
// domain.Requirements. It reads plain text and .docx documents, asks a
// language model to extract the requirements as JSON and decodes the
// answer, filling in defaults for anything the model left out.
package srs

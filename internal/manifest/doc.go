// Package manifest reads, checks and writes pip-style dependency manifests
// (requirements.txt) for the projects srsforge generates.
//
// A manifest is a list of `name[extras]<op><version>` lines grouped under
// comment headers. Only the `>=` and `==` operators are accepted.
package manifest

// Package verify implements recall verification: behavioral checks proving
// that a planted fact is answerable given its evidence conversations and only
// given them. Checks are explicit strategy objects composed per scenario
// category and run against a content-generating model through an Answerer,
// with answers graded by a pluggable AnsweringPolicy.
package verify

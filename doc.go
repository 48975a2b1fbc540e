// Package autoresearch researches a topic autonomously. An Agent plans web
// search queries, runs them, judges whether the evidence is sufficient
// (refining the queries at most twice) and writes a markdown report, while
// delivering progress events to the caller.
package autoresearch

// Package importers loads vocabulary word lists into the store.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	JSON file → ParseWordList → WordList → Pipeline → words / groups repositories
//
// Entries without parts get them from a PartSuggester (the kagome based
// reading.Suggester in production). Suggestions run in parallel; the store
// writes run one at a time so each word is its own transaction.
//
// # File Format
//
// Either a bare array of entries or an object naming a target group:
//
//	{
//	  "group": "JLPT N5 verbs",
//	  "words": [
//	    {"written_form": "食べる", "romanization": "taberu", "gloss": "to eat",
//	     "parts": [{"written_form": "食", "readings": ["た"]}, {"written_form": "べる", "readings": ["べる"]}]},
//	    {"written_form": "飲む", "romanization": "nomu", "gloss": "to drink"}
//	  ]
//	}
//
// Words whose written form already exists are skipped, not updated, but are
// still added to the target group.
//
// # Example Usage
//
//	list, err := importers.ParseWordList(file)
//	pipeline := importers.NewPipeline(s.Words, s.Groups, suggester, log)
//	result, err := pipeline.Import(ctx, list)
package importers

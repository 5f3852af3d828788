// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

// Package dataset loads book catalogs and user ratings from JSON or YAML
// files and validates every record before the data reaches the engine.
//
// File layout (YAML shown; JSON uses the same keys):
//
//	books:
//	  - id: "1"
//	    title: Dune
//	    author: Frank Herbert
//	    genre: Sci-Fi
//	    year: 1965
//	    rating: 4.5
//	ratings:
//	  - user_id: u1
//	    book_id: "1"
//	    value: 5
//	users: [u1, u2]
//
// The users list is optional; when absent, every user with a rating is used.
package dataset

// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import "testing"

func TestFingerprintRatings(t *testing.T) {
	base := testRatings()

	t.Run("equal content equal digest", func(t *testing.T) {
		clone := append([]Rating(nil), base...)
		if FingerprintRatings(base) != FingerprintRatings(clone) {
			t.Error("fingerprints differ for identical ratings")
		}
	})

	t.Run("order insensitive", func(t *testing.T) {
		reversed := make([]Rating, len(base))
		for i, r := range base {
			reversed[len(base)-1-i] = r
		}
		if FingerprintRatings(base) != FingerprintRatings(reversed) {
			t.Error("fingerprint changed with rating order")
		}
	})

	t.Run("value change detected", func(t *testing.T) {
		changed := append([]Rating(nil), base...)
		changed[0].Value = 4
		if FingerprintRatings(base) == FingerprintRatings(changed) {
			t.Error("fingerprint unchanged after value change")
		}
	})

	t.Run("field boundaries", func(t *testing.T) {
		a := []Rating{{UserID: "ab", BookID: "c", Value: 5}}
		b := []Rating{{UserID: "a", BookID: "bc", Value: 5}}
		if FingerprintRatings(a) == FingerprintRatings(b) {
			t.Error("fingerprints alias across field boundaries")
		}
	})

	t.Run("does not reorder input", func(t *testing.T) {
		in := []Rating{{UserID: "z", BookID: "1", Value: 3}, {UserID: "a", BookID: "1", Value: 3}}
		FingerprintRatings(in)
		if in[0].UserID != "z" {
			t.Error("input slice was sorted in place")
		}
	})
}

func TestFingerprintCatalog(t *testing.T) {
	base := testCatalog()

	clone := append([]Book(nil), base...)
	if FingerprintCatalog(base) != FingerprintCatalog(clone) {
		t.Error("fingerprints differ for identical catalogs")
	}

	swapped := append([]Book(nil), base...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if FingerprintCatalog(base) == FingerprintCatalog(swapped) {
		t.Error("catalog order should change the fingerprint")
	}

	rerated := append([]Book(nil), base...)
	rerated[2].Rating += 0.1
	if FingerprintCatalog(base) == FingerprintCatalog(rerated) {
		t.Error("fingerprint unchanged after rating change")
	}

	if FingerprintCatalog(nil) != FingerprintCatalog([]Book{}) {
		t.Error("nil and empty catalogs should match")
	}
}

func TestSnapshot_CacheKey(t *testing.T) {
	a := NewSnapshot(testRatings(), testCatalog())
	b := NewSnapshot(testRatings(), testCatalog())

	if a.cacheKey("u1", 10) != b.cacheKey("u1", 10) {
		t.Error("equal datasets produced different keys")
	}
	if a.cacheKey("u1", 10) == a.cacheKey("u1", 20) {
		t.Error("depth not part of the key")
	}
	if a.cacheKey("u1", 10) == a.cacheKey("u2", 10) {
		t.Error("user not part of the key")
	}

	ra, ca := a.Fingerprints()
	rb, cb := b.Fingerprints()
	if ra != rb || ca != cb {
		t.Error("Fingerprints() differ for equal datasets")
	}
}

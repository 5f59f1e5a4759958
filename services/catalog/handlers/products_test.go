// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/products?"+rawQuery, nil)
	return c
}

func TestParsePage(t *testing.T) {
	c := queryContext(t, "page=3&limit=25")
	p := parsePage(c)
	if p.Page != 3 || p.Limit != 25 {
		t.Errorf("parsePage = %+v, want {3 25}", p)
	}

	// Garbage falls through to zero; the store normalizes.
	c = queryContext(t, "page=abc&limit=")
	p = parsePage(c)
	if p.Page != 0 || p.Limit != 0 {
		t.Errorf("parsePage with garbage = %+v, want zero values", p)
	}
}

func TestParseProductFilter(t *testing.T) {
	collID := primitive.NewObjectID()
	c := queryContext(t, "search=snapback&collection="+collID.Hex()+"&minPrice=10&maxPrice=50&featured=true&onSale=false")

	filter, err := parseProductFilter(c, true)
	if err != nil {
		t.Fatalf("parseProductFilter returned error: %v", err)
	}
	if filter.Search != "snapback" {
		t.Errorf("Search = %q, want snapback", filter.Search)
	}
	if filter.Collection == nil || *filter.Collection != collID {
		t.Errorf("Collection = %v, want %s", filter.Collection, collID.Hex())
	}
	if filter.PriceMin == nil || *filter.PriceMin != 10 {
		t.Errorf("PriceMin = %v, want 10", filter.PriceMin)
	}
	if filter.PriceMax == nil || *filter.PriceMax != 50 {
		t.Errorf("PriceMax = %v, want 50", filter.PriceMax)
	}
	if filter.Featured == nil || !*filter.Featured {
		t.Errorf("Featured = %v, want true", filter.Featured)
	}
	if filter.OnSale == nil || *filter.OnSale {
		t.Errorf("OnSale = %v, want false", filter.OnSale)
	}
	if filter.NewArrival != nil {
		t.Errorf("NewArrival = %v, want nil (absent)", filter.NewArrival)
	}
	if !filter.ActiveOnly {
		t.Error("ActiveOnly must carry through")
	}
}

func TestParseProductFilter_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad collection id", "collection=not-hex"},
		{"injection in collection", `collection={"$ne":null}`},
		{"bad minPrice", "minPrice=cheap"},
		{"bad maxPrice", "maxPrice=1e"},
		{"bad featured", "featured=maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := queryContext(t, tt.query)
			_, err := parseProductFilter(c, true)
			if err == nil {
				t.Fatalf("parseProductFilter(%q) should fail", tt.query)
			}
			if datatypes.AsAPIError(err).Kind != datatypes.KindBadRequest {
				t.Errorf("error kind = %v, want bad request", datatypes.AsAPIError(err).Kind)
			}
		})
	}
}

func TestParseProductSort(t *testing.T) {
	tests := []struct {
		sort    string
		wantKey string
		wantDir int
	}{
		{"price_asc", "price", 1},
		{"price_desc", "price", -1},
		{"rating", "rating", -1},
		{"name", "name", 1},
		{"oldest", "createdAt", 1},
		{"", "createdAt", -1},
		{"bogus", "createdAt", -1},
	}
	for _, tt := range tests {
		c := queryContext(t, "sort="+tt.sort)
		got := parseProductSort(c)
		if len(got) != 1 || got[0].Key != tt.wantKey || got[0].Value != tt.wantDir {
			t.Errorf("parseProductSort(%q) = %v, want {%s %d}", tt.sort, got, tt.wantKey, tt.wantDir)
		}
	}
}

package handlers

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// TestParseChildren_SkipsBlankRows verifies that trailing empty child rows on
// the form are dropped and the remaining rows keep their order.
func TestParseChildren_SkipsBlankRows(t *testing.T) {
	form := url.Values{
		"child_name": {"Amy", "", "Ben"},
		"child_age":  {"7", "", "9"},
	}
	r := httptest.NewRequest("POST", "/register/1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatalf("parse form: %v", err)
	}

	kids := parseChildren(r)
	if len(kids) != 2 {
		t.Fatalf("expected 2 children, got %d", len(kids))
	}
	if kids[0].Name != "Amy" || kids[0].Age != 7 {
		t.Errorf("first child = %+v", kids[0])
	}
	if kids[1].Name != "Ben" || kids[1].Age != 9 {
		t.Errorf("second child = %+v", kids[1])
	}
}

// TestParseChildren_RaggedColumns: optional columns shorter than the name
// column must not panic; missing cells read as empty strings.
func TestParseChildren_RaggedColumns(t *testing.T) {
	form := url.Values{
		"child_name":      {"Amy", "Ben"},
		"child_age":       {"7", "9"},
		"child_allergies": {"peanuts"},
	}
	r := httptest.NewRequest("POST", "/register/1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatalf("parse form: %v", err)
	}

	kids := parseChildren(r)
	if len(kids) != 2 {
		t.Fatalf("expected 2 children, got %d", len(kids))
	}
	if kids[0].Allergies != "peanuts" {
		t.Errorf("first child allergies = %q", kids[0].Allergies)
	}
	if kids[1].Allergies != "" {
		t.Errorf("second child allergies = %q, want empty", kids[1].Allergies)
	}
}

func TestParsePickups_SkipsBlankRows(t *testing.T) {
	form := url.Values{
		"pickup_name":         {"Grandma", ""},
		"pickup_phone":        {"+15550100", "+15550199"},
		"pickup_relationship": {"grandmother", ""},
	}
	r := httptest.NewRequest("POST", "/register/1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatalf("parse form: %v", err)
	}

	pickups := parsePickups(r)
	if len(pickups) != 1 {
		t.Fatalf("expected 1 pickup, got %d", len(pickups))
	}
	if pickups[0].Name != "Grandma" || pickups[0].Relationship != "grandmother" {
		t.Errorf("pickup = %+v", pickups[0])
	}
}

func TestFmtCents(t *testing.T) {
	cases := []struct {
		cents int
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{191000, "$1910.00"},
		{7550, "$75.50"},
		{-2500, "-$25.00"},
	}
	for _, c := range cases {
		if got := fmtCents(c.cents); got != c.want {
			t.Errorf("fmtCents(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
}

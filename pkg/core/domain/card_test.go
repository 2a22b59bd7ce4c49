package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StringList
	}{
		{"array", `["math", " science ", ""]`, StringList{"math", "science"}},
		{"comma string", `"math, art ,"`, StringList{"math", "art"}},
		{"null", `null`, StringList{}},
		{"number", `42`, StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStringListMarshalNil(t *testing.T) {
	data, err := json.Marshal(struct {
		Tags StringList `json:"tags"`
	}{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"tags":[]}` {
		t.Errorf("got %s", data)
	}
}

func TestCardThumbnail(t *testing.T) {
	c := Card{WebpageName: "Math & Art"}
	if got, want := c.Thumbnail(), "https://via.placeholder.com/400x300?text=Math%20%26%20Art"; got != want {
		t.Errorf("Thumbnail() = %q, want %q", got, want)
	}
	c.ThumbnailURL = "https://cdn.test/a.png"
	if c.Thumbnail() != "https://cdn.test/a.png" {
		t.Errorf("stored thumbnail ignored")
	}
}

func TestCardInputValidate(t *testing.T) {
	if err := (CardInput{URL: "https://a.test"}).Validate(); err == nil {
		t.Error("missing name accepted")
	}
	if err := (CardInput{URL: "u", WebpageName: "n", View: IntPtr(3)}).Validate(); err == nil {
		t.Error("view=3 accepted")
	}
	if err := (CardInput{URL: "u", WebpageName: "n"}).Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
}

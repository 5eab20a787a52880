package renderer

import (
	"context"
	"errors"
	"testing"
	"time"
)

const (
	pageOne = `<html><body><article id="a"><p class="txt">first</p></article></body></html>`
	pageTwo = `<html><body>
		<article id="a"><p class="txt">first</p></article>
		<article id="b"><p class="txt">second</p></article>
	</body></html>`
)

func TestStatic_NavigateRewinds(t *testing.T) {
	s, err := NewStatic(pageOne, pageTwo)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Navigate(context.Background(), "https://example.com/feed"); err != nil {
		t.Fatal(err)
	}
	if s.LastURL != "https://example.com/feed" {
		t.Errorf("LastURL = %q", s.LastURL)
	}

	handles, err := s.Elements("article")
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 1 {
		t.Errorf("after rewind the first snapshot should be current, got %d articles", len(handles))
	}
}

func TestStatic_LoadMoreAdvancesAndSaturates(t *testing.T) {
	s, err := NewStatic(pageOne, pageTwo)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := s.LoadMore(context.Background()); err != nil {
			t.Fatalf("LoadMore %d: %v", i, err)
		}
	}

	handles, _ := s.Elements("article")
	if len(handles) != 2 {
		t.Errorf("expected the last snapshot to stay current, got %d articles", len(handles))
	}
}

func TestStatic_WaitReady(t *testing.T) {
	s, err := NewStatic(pageOne)
	if err != nil {
		t.Fatal(err)
	}

	if !s.WaitReady(context.Background(), []string{"nav", "article"}, time.Second) {
		t.Error("WaitReady should succeed when any selector matches")
	}
	if s.WaitReady(context.Background(), []string{"nav", "table"}, time.Second) {
		t.Error("WaitReady should fail when no selector matches")
	}
}

func TestStaticHandle_Lookups(t *testing.T) {
	s, err := NewStatic(pageTwo)
	if err != nil {
		t.Fatal(err)
	}

	handles, err := s.Elements("article")
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 2 {
		t.Fatalf("got %d articles, want 2", len(handles))
	}

	txt, err := handles[1].Element(".txt")
	if err != nil {
		t.Fatalf("Element: %v", err)
	}
	text, err := txt.Text()
	if err != nil {
		t.Fatal(err)
	}
	if text != "second" {
		t.Errorf("text = %q, want second", text)
	}

	id, err := handles[0].Attribute("id")
	if err != nil {
		t.Fatal(err)
	}
	if id == nil || *id != "a" {
		t.Errorf("id attribute = %v, want a", id)
	}
	missing, err := handles[0].Attribute("data-missing")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("absent attribute should be nil, got %q", *missing)
	}

	if _, err := handles[0].Element(".nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing descendant should return ErrNotFound, got %v", err)
	}
}

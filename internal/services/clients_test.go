package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/civic-action/platform/internal/config"
	"go.uber.org/zap"
)

func TestMailjetManageContact(t *testing.T) {
	var mu sync.Mutex
	var actions []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/contactslist/42/managecontact" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		actions = append(actions, body["Action"])
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewMailjetClient(&config.Config{
		MailjetBaseURL:       srv.URL + "/",
		MailjetAPIKey:        "key",
		MailjetSecretKey:     "secret",
		MailjetContactListID: "42",
	}, zap.NewNop())

	if err := c.Subscribe(context.Background(), "a@example.org"); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	c.RemoveAndUnsubscribe(context.Background(), "a@example.org")

	want := []string{MailjetActionAddNoForce, MailjetActionRemove, MailjetActionUnsub}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, actions[i], want[i])
		}
	}
}

func TestMailjetIsSubscribed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contact/member@example.org/getcontactslists":
			_, _ = w.Write([]byte(`{"Count":2,"Data":[{"ListID":7,"IsUnsub":false},{"ListID":42,"IsUnsub":false}]}`))
		case "/contact/gone@example.org/getcontactslists":
			_, _ = w.Write([]byte(`{"Count":1,"Data":[{"ListID":42,"IsUnsub":true}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewMailjetClient(&config.Config{MailjetBaseURL: srv.URL, MailjetContactListID: "42"}, zap.NewNop())

	tests := []struct {
		email string
		want  bool
	}{
		{"member@example.org", true},
		{"gone@example.org", false},
		{"unknown@example.org", false},
	}
	for _, tt := range tests {
		got, err := c.IsSubscribed(context.Background(), tt.email)
		if err != nil {
			t.Fatalf("IsSubscribed(%s) error = %v", tt.email, err)
		}
		if got != tt.want {
			t.Errorf("IsSubscribed(%s) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestMailjetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ErrorMessage":"bad"}`))
	}))
	defer srv.Close()

	c := NewMailjetClient(&config.Config{MailjetBaseURL: srv.URL, MailjetContactListID: "42"}, zap.NewNop())
	if err := c.Subscribe(context.Background(), "a@example.org"); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("benchmark") != "Public_AR_Current" || q.Get("format") != "json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("address") == "nowhere" {
			_, _ = w.Write([]byte(`{"result":{"addressMatches":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[{"matchedAddress":"1400 JOHN F KENNEDY BLVD, PHILADELPHIA, PA, 19107","coordinates":{"x":-75.1636,"y":39.9526}}]}}`))
	}))
	defer srv.Close()

	c := NewGeocoderClient(&config.Config{GeocoderURL: srv.URL}, zap.NewNop())

	pt, err := c.Geocode(context.Background(), "1400 JFK Blvd, 19107")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if pt.Lng != -75.1636 || pt.Lat != 39.9526 {
		t.Errorf("point = %+v", pt)
	}

	if _, err := c.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("expected ErrAddressNotFound, got %v", err)
	}
	if _, err := c.Geocode(context.Background(), "  "); !errors.Is(err, ErrAddressNotFound) {
		t.Errorf("blank address: expected ErrAddressNotFound, got %v", err)
	}
}

func TestGeocodeRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[{"coordinates":{"x":1,"y":2}}]}}`))
	}))
	defer srv.Close()

	c := NewGeocoderClient(&config.Config{GeocoderURL: srv.URL}, zap.NewNop())
	if _, err := c.Geocode(context.Background(), "somewhere"); err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

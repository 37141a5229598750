package domain

import "time"

// Endpoint describes one fetchable upstream source on a store.
// The (store, index) pair is stable for the lifetime of a sync run.
type Endpoint struct {
	URL         string `json:"url"`
	Method      string `json:"method"`
	Description string `json:"description,omitempty"`
}

// Store is a third-party shop whose catalog we ingest.
type Store struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
	Enabled   bool       `json:"enabled"`

	// Credential is an opaque secret blob (API key, token) some upstreams
	// require. Encrypted at rest by the store repository.
	Credential string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndpointAt returns the endpoint at index, or ErrEndpointNotFound.
func (s *Store) EndpointAt(index int) (*Endpoint, error) {
	if index < 0 || index >= len(s.Endpoints) {
		return nil, ErrEndpointNotFound
	}
	return &s.Endpoints[index], nil
}

// HasEndpointAt reports whether the store exposes an endpoint at index.
func (s *Store) HasEndpointAt(index int) bool {
	return index >= 0 && index < len(s.Endpoints)
}

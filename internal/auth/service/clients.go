package service

import "github.com/galleria-app/galleria/internal/auth/domain"

// ClientRegistry holds the OAuth2 clients registered at startup. There
// is no client CRUD; the set is fixed for the life of the process.
type ClientRegistry struct {
	clients map[string]domain.Client
}

func NewClientRegistry(clients ...domain.Client) *ClientRegistry {
	m := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return &ClientRegistry{clients: m}
}

// Get returns the client with the given id, or ErrInvalidClient.
func (r *ClientRegistry) Get(id string) (domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return domain.Client{}, ErrInvalidClient
	}
	return c, nil
}

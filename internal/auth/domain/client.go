package domain

// Client is a registered OAuth 2.0 client. Clients are configured at
// startup rather than stored in the database; the only one today is the
// public single-page frontend, which has no secret and must use PKCE.
type Client struct {
	ID           string
	Name         string
	RedirectURIs []string
	Scopes       []string
	Public       bool
}

// AllowsRedirectURI reports whether uri exactly matches one of the
// client's registered redirect URIs.
func (c Client) AllowsRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// AllowsScope reports whether every requested scope is registered for
// the client.
func (c Client) AllowsScope(requested []string) bool {
	allowed := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		allowed[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := allowed[s]; !ok {
			return false
		}
	}
	return true
}

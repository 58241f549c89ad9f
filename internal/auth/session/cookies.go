package session

import "net/http"

const (
	// SessionCookieName carries the opaque session id. HttpOnly so
	// scripts never see it.
	SessionCookieName = "GALLERIA_SESSION"

	// CSRFCookieName carries the CSRF token. Deliberately NOT HttpOnly:
	// the frontend reads it and echoes it back in the CSRFHeaderName
	// header on every state-changing request.
	CSRFCookieName = "XSRF-TOKEN"

	// CSRFHeaderName is the request header the CSRF guard compares
	// against the session's token.
	CSRFHeaderName = "X-XSRF-TOKEN"

	// CSRFFormField is the hidden form field fallback for plain HTML
	// form submissions.
	CSRFFormField = "_csrf"
)

// WriteCookies sets the session and CSRF cookies for s.
func WriteCookies(w http.ResponseWriter, s *Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    s.CSRFToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookies expires both cookies on logout.
func ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

// FromRequest resolves the request's session from its cookie. Returns
// false when there is no cookie or the session has expired.
func (st *Store) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return st.Get(cookie.Value)
}

// Ensure returns the request's session, creating a fresh one (and
// setting cookies) if none exists.
func (st *Store) Ensure(w http.ResponseWriter, r *http.Request, secure bool) (*Session, error) {
	if s, ok := st.FromRequest(r); ok {
		return s, nil
	}

	s, err := st.Create()
	if err != nil {
		return nil, err
	}
	WriteCookies(w, s, secure)
	return s, nil
}

// Package cookie writes the session cookie.
//
// With a secret of 32 or more bytes every value is signed with HMAC-SHA256
// and read back only when the signature matches; without one values are
// stored as is.
//
//	m := cookie.New(cookie.WithSecret(os.Getenv("COOKIE_SECRET")), cookie.WithSecure(true))
//	m.Write(w, "application.sid", token, 14400)
//	token, err := m.Read(r, "application.sid")
package cookie

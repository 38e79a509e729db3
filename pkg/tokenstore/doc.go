// Package tokenstore persists the backend session token between runs so a
// later start can restore the session silently.
//
// Three stores are provided:
//
//   - Memory keeps the record in process memory (tests, short-lived tools).
//   - File writes a YAML document under ~/.config/mapofpi with owner-only
//     permissions.
//   - Redis keeps the record under a single key and expires it together with
//     the token.
//
// Records carry the token's expiry when the token is a JWT. The expiry is
// read from the unverified claims; the backend remains the authority on
// whether the token is valid. Expired records are reported as ErrNotFound.
//
// # Usage
//
//	store, err := tokenstore.Open(cfg, redisClient)
//	if err != nil {
//		return err
//	}
//
//	rec := tokenstore.NewRecord(token, user.PiUID)
//	if err := store.Save(ctx, rec); err != nil {
//		return err
//	}
//
//	rec, err = store.Load(ctx)
//	if errors.Is(err, tokenstore.ErrNotFound) {
//		// nothing to restore
//	}
package tokenstore

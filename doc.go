// Package auth implements the credential and presence core for the shop
// backend: self-issued bearer tokens, password hashing, role checks at
// request boundaries, and a registry of authenticated realtime connections
// that powers the broadcast chat feature.
//
// Credential flow:
//   - Auther orchestrates Register, Login, and RefreshStatus against a
//     CredentialStore, a bcrypt hasher, and a TokenService. Tokens carry the
//     user id only; roles and profile data are re-read from the store on
//     every verification so role edits apply on the next request.
//
// Access control:
//   - CheckAccess is a pure intersection test between an identity's role
//     tags and a route's required set. Routes declare their requirements in
//     a static RoleTable consulted at registration time.
//
// Presence:
//   - Registry owns the connection-id to user mapping. Entries appear on a
//     verified handshake and disappear unconditionally on disconnect; every
//     change fans out a clients-updated broadcast to all live connections.
package auth

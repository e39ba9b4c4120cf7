// Package pipeline provides the authentication hook pipeline that runs
// around the credential engine.
//
// The pipeline intercepts every sign-up and sign-in request at two points:
//   - Before phase: runs ahead of the credential engine and can reject the
//     request (client identity, phone format, phone uniqueness).
//   - After phase: runs once the credential engine has answered and carries
//     the cross-service side effect (provisioning the canonical user record
//     in the identity directory).
//
// Stages in a phase run sequentially in a fixed order; the first rejection
// short-circuits the rest of the phase and is surfaced verbatim as a
// [Rejection]. Unmatched (path, method) combinations pass through without
// running any stage.
//
// # Error taxonomy
//
// Every rejection carries exactly one of two kinds: KindUnauthorized (bad or
// missing client identity) or KindBadRequest (malformed input, duplicate
// phone, or any downstream failure during lookup or provisioning). Stages
// never let a raw transport error escape; they reclassify it before
// returning.
package pipeline

package multicall

import "errors"

// Aggregation errors. Everything here is fail-fast: when any of these is
// returned no results are returned with it. The only partial-success channel
// is a per-call Failure inside the result slice.
var (
	// ErrEncodeFailed means a queued call's arguments do not match its
	// signature. Raised before any network interaction.
	ErrEncodeFailed = errors.New("encoding call failed")

	// ErrTransportFailed means the underlying eth_call itself failed; the
	// batching contract was never reached (or reverted wholesale).
	ErrTransportFailed = errors.New("transport call failed")

	// ErrCountMismatch means the reply carried a different number of items
	// than were sent, which points at a wrong or incompatible batching
	// contract address.
	ErrCountMismatch = errors.New("result count mismatch")

	// ErrDecodeFailed means reply bytes did not decode: either the outer
	// reply envelope, or a reported-successful item against its signature.
	// The latter indicates a descriptor/signature mismatch and aborts the
	// whole aggregation rather than masking it as a per-call failure.
	ErrDecodeFailed = errors.New("decoding result failed")
)

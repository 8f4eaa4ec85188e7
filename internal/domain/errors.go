package domain

import "errors"

// ErrInvalidNode means a write path targeted a node it may not mutate: the
// hardware path only accepts the real node, the stage-effect and manual
// override paths never accept it.
var ErrInvalidNode = errors.New("stormeye: write path not authorized for node")

// ErrUnknownAsset means a deploy toggle named something other than the two
// known assets.
var ErrUnknownAsset = errors.New("stormeye: unknown deployable asset")

// ErrMalformedPayload means a required field is missing or out of range.
var ErrMalformedPayload = errors.New("stormeye: malformed payload")

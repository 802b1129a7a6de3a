package gateway

// LinkCodec hides transaction ids inside public payment link tokens
type LinkCodec interface {
	// Encode returns an opaque token for the transaction id
	Encode(transactionID string) (string, error)
	// Decode returns the transaction id, or false for any invalid token
	Decode(token string) (string, bool)
}

package apperror

// Code represents a unique error code for the application.
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Curve/solver error codes
const (
	// CodeDomainError signals the curve is undefined at the requested point:
	// a non-positive balance, a zero denominator, or a vertical tangent.
	CodeDomainError Code = "DOMAIN_ERROR"

	// CodeConvergenceError signals the root-finder exhausted its iteration
	// budget without meeting tolerance.
	CodeConvergenceError Code = "CONVERGENCE_ERROR"

	// CodeInvariantViolation signals the recomputed invariant drifted beyond
	// tolerance after a swap, or a quote produced a non-positive output.
	// This is a logic-level fault, not a user error.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeInsufficientLiquidity signals the requested swap would consume a
	// pool balance to zero or below.
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
)

// Feed/infra error codes
const (
	CodeFeedConnectionFailed Code = "FEED_CONNECTION_FAILED"
	CodeFeedStale            Code = "FEED_STALE"
	CodeFeedParseError       Code = "FEED_PARSE_ERROR"
	CodeWebSocketClosed      Code = "WEBSOCKET_CLOSED"
	CodeEthereumRPCError     Code = "ETHEREUM_RPC_ERROR"
	CodeCircuitOpen          Code = "CIRCUIT_OPEN"
)

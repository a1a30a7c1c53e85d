package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidState:       "Invalid state for this operation",
	CodeNotFound:           "Resource not found",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeDomainError:           "Curve undefined at the requested point",
	CodeConvergenceError:      "Root-finder did not converge within the iteration budget",
	CodeInvariantViolation:    "Invariant drifted beyond tolerance",
	CodeInsufficientLiquidity: "Insufficient liquidity for swap size",

	CodeFeedConnectionFailed: "Failed to connect to price feed",
	CodeFeedStale:            "Price feed data is stale",
	CodeFeedParseError:       "Failed to parse price feed message",
	CodeWebSocketClosed:      "WebSocket connection closed",
	CodeEthereumRPCError:     "Ethereum RPC call failed",
	CodeCircuitOpen:          "Circuit breaker is open",
}

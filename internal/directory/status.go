package directory

type Outcome int

const (
	Success Outcome = iota
	ClientFailure
	ServerFailure
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ClientFailure:
		return "client_failure"
	case ServerFailure:
		return "server_failure"
	default:
		return "malformed"
	}
}

// Classify maps an HTTP status code onto the response outcome.
func Classify(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return Success
	case statusCode >= 400 && statusCode < 500:
		return ClientFailure
	case statusCode >= 500 && statusCode < 600:
		return ServerFailure
	default:
		return Malformed
	}
}

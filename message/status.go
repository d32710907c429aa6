package message

// Status pairs a status code with its default reason phrase.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#name-status-codes
type Status struct {
	Code   int
	Reason string
}

var (
	StatusOK                  = Status{200, "OK"}
	StatusCreated             = Status{201, "Created"}
	StatusNoContent           = Status{204, "No Content"}
	StatusMovedPermanently    = Status{301, "Moved Permanently"}
	StatusFound               = Status{302, "Found"}
	StatusNotModified         = Status{304, "Not Modified"}
	StatusBadRequest          = Status{400, "Bad Request"}
	StatusNotFound            = Status{404, "Not Found"}
	StatusRequestTimeout      = Status{408, "Request Timeout"}
	StatusInternalServerError = Status{500, "Internal Server Error"}
	StatusNotImplemented      = Status{501, "Not Implemented"}
)

// defaultReasons covers the codes the core itself ever emits without an
// application-supplied reason phrase.
var defaultReasons = map[int]string{
	200: StatusOK.Reason,
	201: StatusCreated.Reason,
	204: StatusNoContent.Reason,
	301: StatusMovedPermanently.Reason,
	302: StatusFound.Reason,
	304: StatusNotModified.Reason,
	400: StatusBadRequest.Reason,
	404: StatusNotFound.Reason,
	408: StatusRequestTimeout.Reason,
	500: StatusInternalServerError.Reason,
	501: StatusNotImplemented.Reason,
}

// ReasonFor returns the default reason phrase for code, or "" if unknown.
func ReasonFor(code int) string {
	return defaultReasons[code]
}

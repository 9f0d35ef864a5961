package fetcher

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/yohayonyon/blc/task"
)

// dnsFailureSubstrings are OS-specific connection-error reasons that
// indicate a DNS resolution failure, matched against the stringified
// cause the way the original crawler matched them against
// ConnectionError.args[0].reason.
var dnsFailureSubstrings = []string{
	"[Errno 11001] getaddrinfo failed",                    // Windows
	"[Errno -2] Name or service not known",                // POSIX (glibc)
	"[Errno 7] nodename nor servname provided, or not known", // BSD/Darwin
	"[Errno 1001] Host not found",                         // OS/2
	"no such host",                                        // Go's net package equivalent
	"server misbehaving",
}

// Classify maps a terminal fetch failure to a Status. statusCode is
// the last HTTP status observed, or 0 if the failure occurred before
// a response was received. A statusCode of 404 maps to NoSuchPage;
// Fetch itself handles its 404 sentinel before calling Classify.
func Classify(err error, statusCode int) task.Status {
	if statusCode == http.StatusNotFound {
		return task.NoSuchPage
	}

	if err == nil {
		return task.OtherError
	}

	if isDNSFailure(err) {
		return task.NoSuchDomain
	}

	return task.OtherError
}

func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	msg := err.Error()
	for _, substr := range dnsFailureSubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

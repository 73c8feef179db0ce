package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService   = "service"
	FieldError     = "error"
	FieldMessageID = "message_id"
	FieldKey       = "key"
	FieldBucket    = "bucket"
	FieldQueueURL  = "queue_url"
	FieldIP        = "ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldReceived  = "received"
	FieldStored    = "stored"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// MessageID returns a slog attribute for a queue message ID.
func MessageID(id string) slog.Attr {
	return slog.String(FieldMessageID, id)
}

// Key returns a slog attribute for an object store key.
func Key(key string) slog.Attr {
	return slog.String(FieldKey, key)
}

// Bucket returns a slog attribute for an object store bucket.
func Bucket(bucket string) slog.Attr {
	return slog.String(FieldBucket, bucket)
}

// QueueURL returns a slog attribute for a queue URL.
func QueueURL(url string) slog.Attr {
	return slog.String(FieldQueueURL, url)
}

// IP returns a slog attribute for the client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

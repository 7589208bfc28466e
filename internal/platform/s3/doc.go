// Package s3 uploads encrypted secrets to an S3-compatible bucket.
//
// Any endpoint speaking the S3 protocol works (AWS, Hetzner Object Storage,
// MinIO). Requests use path-style addressing so self-hosted endpoints do not
// need wildcard DNS.
package s3

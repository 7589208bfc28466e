// Package gcloud wraps the gcloud CLI calls swarmflow needs: instance
// address lookup, firewall rules for ingress, and Cloud KMS encryption.
package gcloud

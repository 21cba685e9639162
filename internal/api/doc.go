// Package api exposes the review service over HTTP. Handlers decode and
// validate requests, call review.ReviewService with the authenticated owner
// and map service errors onto status codes and safe messages.
package api

// Package placement implements structural validation of evidence embedding:
// each evidence message must appear exactly once, in the right conversation,
// said by the right speaker. Matching is fuzzy because generated conversations
// drift from the requested evidence text, but validation itself is pure and
// deterministic given its inputs.
package placement

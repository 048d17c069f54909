package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// attestationsResponse is the GitHub REST API response shape for
// GET /repos/{owner}/{repo}/attestations/{digest}.
type attestationsResponse struct {
	Attestations []struct {
		Bundle json.RawMessage `json:"bundle"`
	} `json:"attestations"`
}

// FetchAttestationBundles retrieves every Sigstore bundle published as a
// GitHub artifact attestation for the artifact with the given sha256 digest
// (hex-encoded, no "sha256:" prefix). Each returned []byte is the raw bundle
// JSON, ready for protojson unmarshaling.
func FetchAttestationBundles(ctx context.Context, client *http.Client, owner, repo, sha256Hex string) ([][]byte, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/attestations/sha256:%s", owner, repo, sha256Hex)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attestations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d for %s/%s attestations", resp.StatusCode, owner, repo)
	}

	var parsed attestationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode attestations response: %w", err)
	}

	bundles := make([][]byte, 0, len(parsed.Attestations))
	for _, a := range parsed.Attestations {
		bundles = append(bundles, a.Bundle)
	}
	return bundles, nil
}

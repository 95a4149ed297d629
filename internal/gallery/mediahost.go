package gallery

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Cloudinary talks to the media host's admin API: signing browser uploads
// and destroying binaries for removed gallery entries.
type Cloudinary struct {
	CloudName string
	APIKey    string
	apiSecret string
	httpc     *http.Client
}

func NewCloudinary(cloudName, apiKey, apiSecret string, httpc *http.Client) *Cloudinary {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Cloudinary{
		CloudName: cloudName,
		APIKey:    apiKey,
		apiSecret: apiSecret,
		httpc:     httpc,
	}
}

// SignUpload produces the signature the browser attaches to a direct upload.
// The host expects a SHA-1 over the sorted parameters plus the API secret.
func (c *Cloudinary) SignUpload(params map[string]string) (signature string, timestamp int64) {
	timestamp = time.Now().Unix()

	signed := map[string]string{"timestamp": fmt.Sprintf("%d", timestamp)}
	for k, v := range params {
		if v != "" {
			signed[k] = v
		}
	}

	return signParams(signed, c.apiSecret), timestamp
}

// Destroy removes one hosted binary by its public id.
func (c *Cloudinary) Destroy(ctx context.Context, publicID, resourceType string) error {
	if resourceType != "video" {
		resourceType = "image"
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := signParams(map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}, c.apiSecret)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.APIKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/%s/destroy", c.CloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy %s: status %s", publicID, res.Status)
	}
	return nil
}

// signParams canonicalizes params as sorted key=value pairs joined by '&',
// appends the secret, and hex-encodes the SHA-1.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

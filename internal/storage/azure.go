package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureWeightsSource fetches weight artifacts from Azure blob storage, for
// deployments whose model files are not publicly reachable over HTTP.
type AzureWeightsSource struct {
	client *azblob.Client
}

// NewAzureWeightsSource builds a shared-key blob client for the account.
func NewAzureWeightsSource(accountName string, accountKey string) (*AzureWeightsSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureWeightsSource{client: client}, nil
}

// Fetch downloads the blob at srcURL into dest. The URL path names the
// container and blob: https://<account>.blob.core.windows.net/<container>/<blob>.
func (s *AzureWeightsSource) Fetch(ctx context.Context, srcURL string, dest string) error {
	parsedURL, err := url.Parse(srcURL)
	if err != nil {
		return fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName, blobName, err := splitBlobPath(parsedURL.Path)
	if err != nil {
		return err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return writeAtomic(dest, retryReader)
}

func splitBlobPath(p string) (container string, blob string, err error) {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if i == len(p)-1 {
				break
			}
			return p[:i], p[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("blob URL path %q must be /<container>/<blob>", p)
}

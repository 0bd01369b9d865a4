package filestorage

import (
	"testing"

	"github.com/SeakMengs/Signfy/internal/config"
)

func TestNewMinioClient(t *testing.T) {
	client, err := NewMinioClient(config.MinioConfig{Enabled: false})
	if err != nil || client != nil {
		t.Errorf("disabled archive should give a nil client, got %v, %v", client, err)
	}

	client, err = NewMinioClient(config.MinioConfig{
		ENDPOINT:   "127.0.0.1:9000",
		ACCESS_KEY: "minio",
		SECRET_KEY: "minio123",
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("NewMinioClient() unexpected error: %v", err)
	}
	if client.EndpointURL().Host != "127.0.0.1:9000" {
		t.Errorf("endpoint = %s", client.EndpointURL().Host)
	}
}

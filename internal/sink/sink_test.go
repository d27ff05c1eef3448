package sink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/repodiff/internal/models"
)

type fakeSigner struct {
	keyCalls int
}

func (f *fakeSigner) SignDetached(data []byte) ([]byte, error) {
	return append([]byte("sig:"), data...), nil
}

func (f *fakeSigner) GetPublicKey() ([]byte, error) {
	f.keyCalls++
	return []byte("public key"), nil
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := *params.Bucket + "/" + *params.Key
	f.objects[key] = data
	f.types[key] = *params.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestFileSystemSinkWritesReportLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSystemSink(dir)

	report := models.NewReport([]string{"zsh", "bash"})
	label := models.Label{Algorithm: models.RightOnly, Architecture: "noarch"}
	require.NoError(t, s.WriteReport(context.Background(), label, report))

	data, err := os.ReadFile(filepath.Join(dir, "Comparison2", "comparison2_noarch.json"))
	require.NoError(t, err)

	want, err := report.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	_, err = os.Stat(filepath.Join(dir, "Comparison2", "comparison2_noarch.json.asc"))
	assert.True(t, os.IsNotExist(err), "no signature expected without a signer")
}

func TestFileSystemSinkSignsAndPublishesKeyOnce(t *testing.T) {
	dir := t.TempDir()
	sig := &fakeSigner{}
	s := NewFileSystemSink(dir, WithSigner(sig))

	for _, arch := range []string{"x86_64", "aarch64"} {
		label := models.Label{Algorithm: models.LeftOnly, Architecture: arch}
		require.NoError(t, s.WriteReport(context.Background(), label, models.NewReport([]string{"bash"})))
	}

	report, err := os.ReadFile(filepath.Join(dir, "Comparison1", "comparison1_x86_64.json"))
	require.NoError(t, err)
	signature, err := os.ReadFile(filepath.Join(dir, "Comparison1", "comparison1_x86_64.json.asc"))
	require.NoError(t, err)
	assert.Equal(t, "sig:"+string(report), string(signature))

	pub, err := os.ReadFile(filepath.Join(dir, PublicKeyKey))
	require.NoError(t, err)
	assert.Equal(t, "public key", string(pub))
	assert.Equal(t, 1, sig.keyCalls)
}

func TestFileSystemSinkWriteSummary(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSystemSink(dir)

	summary := &models.Summary{Left: "p10", Right: "sisyphus", VersionOrder: "lexicographic"}
	require.NoError(t, s.WriteSummary(context.Background(), summary))

	data, err := os.ReadFile(filepath.Join(dir, SummaryKey))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"left": "p10"`)
}

func TestFileSystemSinkWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the category folder should be
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Comparison3"), []byte("x"), 0644))

	s := NewFileSystemSink(dir)
	label := models.Label{Algorithm: models.NewerInLeft, Architecture: "x86_64"}
	err := s.WriteReport(context.Background(), label, models.NewReport(nil))
	require.Error(t, err)
}

func TestSinkRejectsKeysOutsideRoot(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	s := NewFileSystemSink(out)

	label := models.Label{Algorithm: models.LeftOnly, Architecture: "x/../../../escaped"}
	err := s.WriteReport(context.Background(), label, models.NewReport([]string{"bash"}))
	require.ErrorIs(t, err, ErrUnsafeKey)

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be written next to the output directory")

	client := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s3Sink := NewS3Sink(client, "reports", "nightly")
	err = s3Sink.WriteReport(context.Background(), label, models.NewReport(nil))
	require.ErrorIs(t, err, ErrUnsafeKey)
	assert.Empty(t, client.objects)
}

func TestS3SinkKeys(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := NewS3Sink(client, "reports", "p10-vs-sisyphus", WithSigner(&fakeSigner{}))

	label := models.Label{Algorithm: models.NewerInLeft, Architecture: "i586"}
	require.NoError(t, s.WriteReport(context.Background(), label, models.NewReport([]string{"glibc"})))

	key := "reports/p10-vs-sisyphus/Comparison3/comparison3_i586.json"
	require.Contains(t, client.objects, key)
	assert.Contains(t, string(client.objects[key]), `"glibc"`)
	assert.Equal(t, "application/json", client.types[key])
	assert.Equal(t, "application/pgp-signature", client.types[key+".asc"])
	assert.Contains(t, client.objects, "reports/p10-vs-sisyphus/"+PublicKeyKey)
}

func TestS3StoreLocation(t *testing.T) {
	assert.Equal(t, "s3://b/Comparison1/x.json", NewS3Store(nil, "b", "").Location("Comparison1/x.json"))
	assert.Equal(t, "s3://b/runs/1/manifest.json", NewS3Store(nil, "b", "runs/1").Location("manifest.json"))
}

func TestS3SinkPutFailure(t *testing.T) {
	boom := errors.New("access denied")
	client := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, err: boom}
	s := NewS3Sink(client, "reports", "")

	label := models.Label{Algorithm: models.LeftOnly, Architecture: "x86_64"}
	err := s.WriteReport(context.Background(), label, models.NewReport(nil))
	assert.ErrorIs(t, err, boom)
}

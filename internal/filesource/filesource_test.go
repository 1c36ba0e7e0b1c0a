package filesource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	in   *s3.GetObjectInput
	body string
	err  error
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func stubS3(t *testing.T, g *fakeGetter) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newObjectGetter
	t.Cleanup(func() { loadDefaultAWSConfig, newObjectGetter = origLoad, origNew })

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	applied := &s3.Options{}
	newObjectGetter = func(_ aws.Config, optFns ...func(*s3.Options)) objectGetter {
		for _, fn := range optFns {
			fn(applied)
		}
		return g
	}
	return applied
}

func TestRead_LocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "agenda.csv")
	require.NoError(t, os.WriteFile(p, []byte("data,materia,tipo,descrizione\n"), 0o600))

	data, err := New(Options{}).Read(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "data,materia,tipo,descrizione\n", string(data))
}

func TestRead_LocalMissing(t *testing.T) {
	_, err := New(Options{}).Read(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(p, make([]byte, MaxSize+1), 0o600))

	_, err := New(Options{}).Read(context.Background(), p)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRead_S3(t *testing.T) {
	g := &fakeGetter{body: `{"agenda":[]}`}
	applied := stubS3(t, g)

	r := New(Options{Region: "eu-south-1", Endpoint: "http://localhost:9000"})
	data, err := r.Read(context.Background(), "s3://school/exports/agenda.json")
	require.NoError(t, err)
	assert.Equal(t, `{"agenda":[]}`, string(data))

	assert.Equal(t, "school", aws.ToString(g.in.Bucket))
	assert.Equal(t, "exports/agenda.json", aws.ToString(g.in.Key))
	assert.Equal(t, "http://localhost:9000", aws.ToString(applied.BaseEndpoint))
	assert.True(t, applied.UsePathStyle)
}

func TestRead_S3Errors(t *testing.T) {
	boom := errors.New("NoSuchKey")
	stubS3(t, &fakeGetter{err: boom})

	_, err := New(Options{}).Read(context.Background(), "s3://school/missing.txt")
	assert.ErrorIs(t, err, boom)

	_, err = New(Options{}).Read(context.Background(), "s3://onlybucket")
	assert.ErrorContains(t, err, "malformed s3 uri")
}

func TestName(t *testing.T) {
	assert.Equal(t, "agenda.json", Name("s3://school/exports/agenda.json"))
	assert.Equal(t, "voti.csv", Name("/home/me/voti.csv"))
	assert.Equal(t, "note.txt", Name(`C:\Users\me\note.txt`))
}

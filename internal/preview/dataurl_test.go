package preview

import (
	"testing"

	"github.com/leafscan/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	tests := []struct {
		name string
		file *models.FileSelection
		want string
	}{
		{
			name: "jpeg",
			file: &models.FileSelection{Name: "leaf1.jpg", ContentType: "image/jpeg", Data: []byte("abc")},
			want: "data:image/jpeg;base64,YWJj",
		},
		{
			name: "unknown type",
			file: &models.FileSelection{Name: "blob", Data: []byte{0x00}},
			want: "data:application/octet-stream;base64,AA==",
		},
		{
			name: "empty file",
			file: &models.FileSelection{Name: "empty.png", ContentType: "image/png"},
			want: "data:image/png;base64,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DataURL(tt.file))
		})
	}
}

func TestDecode(t *testing.T) {
	ct, data, err := Decode("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("hello"), data)

	for _, bad := range []string{"", "http://x", "data:image/png,plain", "data:image/png;base64"} {
		_, _, err := Decode(bad)
		assert.ErrorIs(t, err, ErrNotDataURL, bad)
	}

	_, _, err = Decode("data:image/png;base64,!!!")
	assert.Error(t, err)
}

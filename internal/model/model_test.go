package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType_Valid(t *testing.T) {
	for _, ct := range ContentTypes {
		assert.True(t, ct.Valid(), ct)
	}
	assert.False(t, ContentType("vcard").Valid())
	assert.False(t, ContentType("").Valid())
}

func TestQRCode_KindAndTarget(t *testing.T) {
	q := &QRCode{}
	assert.Equal(t, ContentLink, q.Kind())
	assert.Equal(t, "", q.Target())

	q.Payload = "example.com/payload"
	assert.Equal(t, "example.com/payload", q.Target())

	q.TargetURL = "example.com/target"
	assert.Equal(t, "example.com/target", q.Target())

	q.ContentType = ContentVideo
	assert.Equal(t, ContentVideo, q.Kind())
}

func TestUser_Password(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.SetPassword("secret"))
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.True(t, u.CheckPassword("secret"))
	assert.False(t, u.CheckPassword("wrong"))
}

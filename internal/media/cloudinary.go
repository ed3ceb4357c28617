package media

import (
	"bytes"
	"context"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader implements Uploader on Cloudinary.
type CloudinaryUploader struct {
	cld *cld.Cloudinary
}

// NewCloudinaryUploader creates an uploader from a CLOUDINARY_URL-style
// connection string.
func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	client, err := cld.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: client}, nil
}

func (u *CloudinaryUploader) UploadBytes(ctx context.Context, folder, filename string, b []byte) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(b), uploader.UploadParams{
		Folder:   folder,
		PublicID: filename,
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

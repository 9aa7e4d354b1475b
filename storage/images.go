package storage

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Kos pictures are kept in Cloudinary. Configuration via environment:
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET,
// CLOUDINARY_FOLDER (optional).

var ErrImageStoreNotConfigured = errors.New("image store is not configured")

func InitializeImageStore() {
	if _, _, _, _, err := cloudinaryConfig(); err != nil {
		log.Println("Warning: image store not configured, picture uploads will fail")
	}
}

func cloudinaryConfig() (cloudName, apiKey, apiSecret, folder string, err error) {
	cloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey = os.Getenv("CLOUDINARY_API_KEY")
	apiSecret = os.Getenv("CLOUDINARY_API_SECRET")
	folder = os.Getenv("CLOUDINARY_FOLDER")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		err = ErrImageStoreNotConfigured
	}
	return
}

func signParams(publicID, timestamp, apiSecret string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, apiSecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

// UploadBase64Image performs a signed upload and returns the hosted URL.
func UploadBase64Image(base64ImageSrc string, publicID string) (string, error) {
	if base64ImageSrc == "" {
		return "", errors.New("empty image payload")
	}

	payload := base64ImageSrc
	if i := strings.Index(base64ImageSrc, ","); i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	cloudName, apiKey, apiSecret, folder, err := cloudinaryConfig()
	if err != nil {
		return "", err
	}

	if folder != "" {
		publicID = folder + "/" + publicID
	}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", apiKey)
	form.Add("public_id", publicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", signParams(publicID, timestamp, apiSecret))

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/upload"
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image upload failed with status %d: %s", res.StatusCode, body)
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		return "", err
	}
	if cloudRes.Error.Message != "" {
		return "", errors.New(cloudRes.Error.Message)
	}

	out := cloudRes.SecureURL
	if out == "" {
		out = cloudRes.URL
	}
	if out == "" {
		return "", errors.New("image upload returned no URL")
	}
	return out, nil
}

// DeleteImage removes a previously uploaded image given its hosted URL.
func DeleteImage(imageURL string) error {
	if !strings.Contains(imageURL, "res.cloudinary.com") {
		return fmt.Errorf("not a hosted image URL: %s", imageURL)
	}

	// URL format: .../image/upload/v{version}/{public_id}.{format}
	// The public ID may contain slashes, so keep everything after the
	// version segment.
	i := strings.Index(imageURL, "/upload/")
	if i == -1 {
		return fmt.Errorf("unrecognized image URL: %s", imageURL)
	}
	rest := imageURL[i+len("/upload/"):]
	if j := strings.Index(rest, "/"); j != -1 && strings.HasPrefix(rest, "v") {
		rest = rest[j+1:]
	}
	publicID := rest
	if j := strings.LastIndex(publicID, "."); j != -1 {
		publicID = publicID[:j]
	}

	cloudName, apiKey, apiSecret, _, err := cloudinaryConfig()
	if err != nil {
		return err
	}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("api_key", apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", signParams(publicID, timestamp, apiSecret))

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/destroy"
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("image deletion failed with status %d: %s", res.StatusCode, body)
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return err
	}
	if deleteRes.Error.Message != "" {
		return errors.New(deleteRes.Error.Message)
	}
	if deleteRes.Result != "ok" {
		return fmt.Errorf("image deletion result not ok: %s", deleteRes.Result)
	}
	return nil
}

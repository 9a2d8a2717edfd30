// Package handlers implements the pagecrate HTTP surface: the
// S3-compatible bucket endpoints and the JSON management API.
package handlers

import (
	"encoding/xml"
	"net/http"
	"time"
)

// s3TimeFormat is the timestamp layout S3 uses in listing responses.
const s3TimeFormat = "2006-01-02T15:04:05.000Z"

// s3Time marshals timestamps in the S3 listing layout.
type s3Time time.Time

func (t s3Time) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(time.Time(t).UTC().Format(s3TimeFormat), start)
}

func (t *s3Time) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	parsed, err := time.Parse(s3TimeFormat, raw)
	if err != nil {
		return err
	}
	*t = s3Time(parsed)
	return nil
}

// ListBucketResult is the ListObjects response document.
type ListBucketResult struct {
	XMLName        xml.Name       `xml:"http://s3.amazonaws.com/doc/2006-03-01/ ListBucketResult"`
	Name           string         `xml:"Name"`
	Prefix         string         `xml:"Prefix"`
	Marker         string         `xml:"Marker"`
	MaxKeys        int            `xml:"MaxKeys"`
	IsTruncated    bool           `xml:"IsTruncated"`
	Contents       []Object       `xml:"Contents"`
	CommonPrefixes []CommonPrefix `xml:"CommonPrefixes"`
}

// Object is one Contents entry.
type Object struct {
	Key          string `xml:"Key"`
	LastModified s3Time `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
	Owner        Owner  `xml:"Owner"`
}

// Owner identifies the object owner; pagecrate reports the bucket name.
type Owner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

// CommonPrefix is one delimiter-grouped prefix.
type CommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

// S3Error is the S3 error document.
type S3Error struct {
	XMLName    xml.Name `xml:"Error"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	Key        string   `xml:"Key,omitempty"`
	BucketName string   `xml:"BucketName,omitempty"`
}

// writeXML writes an XML document with the standard declaration.
func writeXML(w http.ResponseWriter, status int, doc any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(doc)
}

// writeNoSuchBucket writes the NoSuchBucket error response.
func writeNoSuchBucket(w http.ResponseWriter, bucket string) {
	writeXML(w, http.StatusNotFound, S3Error{
		Code:       "NoSuchBucket",
		Message:    "The specified bucket does not exist",
		BucketName: bucket,
	})
}

// writeNoSuchKey writes the NoSuchKey error response.
func writeNoSuchKey(w http.ResponseWriter, key string) {
	writeXML(w, http.StatusNotFound, S3Error{
		Code:    "NoSuchKey",
		Message: "The specified key does not exist",
		Key:     key,
	})
}

// writeS3Internal writes an InternalError response.
func writeS3Internal(w http.ResponseWriter) {
	writeXML(w, http.StatusInternalServerError, S3Error{
		Code:    "InternalError",
		Message: "We encountered an internal error. Please try again.",
	})
}

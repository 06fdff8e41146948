package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	appconfig "github.com/semmidev/siteshot-storage/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestS3Storage(t *testing.T) {
	Convey("Given an S3 storage config", t, func() {
		cfg := &appconfig.StorageConfig{
			Type:         "s3",
			Container:    "screenshots",
			Region:       "eu-west-1",
			Endpoint:     "http://localhost:9000/",
			AccessKey:    "AKIA",
			SecretKey:    "secret",
			UsePathStyle: true,
		}

		Convey("NewS3", func() {
			storage, err := NewS3(context.Background(), cfg)

			Convey("It should build the client without network access", func() {
				So(err, ShouldBeNil)
				So(storage.client, ShouldNotBeNil)
				So(storage.uploader, ShouldNotBeNil)
				So(storage.downloader, ShouldNotBeNil)
				So(storage.bucket, ShouldEqual, "screenshots")
				So(storage.region, ShouldEqual, "eu-west-1")
			})
		})
	})
}

func TestIsNotFound(t *testing.T) {
	Convey("Given errors returned by S3", t, func() {
		Convey("Typed missing key and missing object errors are not found", func() {
			So(isNotFound(&types.NoSuchKey{}), ShouldBeTrue)
			So(isNotFound(fmt.Errorf("wrapped: %w", &types.NotFound{})), ShouldBeTrue)
		})

		Convey("Generic API errors are classified by code", func() {
			So(isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}), ShouldBeTrue)
			So(isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}), ShouldBeFalse)
			So(isNotFound(&smithy.GenericAPIError{Code: "NoSuchBucket"}), ShouldBeFalse)
		})

		Convey("A bare 404 response is not found", func() {
			err := &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
				Err:      errors.New("not found"),
			}
			So(isNotFound(err), ShouldBeTrue)
		})

		Convey("A 404 carrying an API code is classified by the code", func() {
			wrapped := func(code string) error {
				return &smithy.OperationError{
					ServiceID:     "S3",
					OperationName: "GetObject",
					Err: &awshttp.ResponseError{
						ResponseError: &smithyhttp.ResponseError{
							Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
							Err:      &smithy.GenericAPIError{Code: code},
						},
						RequestID: "req-1",
					},
				}
			}
			So(isNotFound(wrapped("NoSuchBucket")), ShouldBeFalse)
			So(isNotFound(wrapped("NoSuchKey")), ShouldBeTrue)
			So(isNotFound(wrapped("NotFound")), ShouldBeTrue)
		})

		Convey("Other errors are not", func() {
			So(isNotFound(errors.New("connection reset")), ShouldBeFalse)
		})

		Convey("Bucket ownership conflicts are recognised", func() {
			So(isBucketOwned(&types.BucketAlreadyOwnedByYou{}), ShouldBeTrue)
			So(isBucketOwned(&smithy.GenericAPIError{Code: "BucketAlreadyExists"}), ShouldBeFalse)
		})
	})
}

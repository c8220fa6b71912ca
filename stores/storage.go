package stores

import (
	"os"

	"github.com/sirupsen/logrus"

	"canvascrafters/core"
	"canvascrafters/stores/aws"
	"canvascrafters/stores/filesystem"
	"canvascrafters/stores/memory"
	"canvascrafters/stores/sqlite"
)

// GetStore selects the persistence backend from the STORAGE_TYPE environment
// variable. Unset or unknown values get the in-memory store.
func GetStore() core.CanvasStore {
	storageType := os.Getenv("STORAGE_TYPE")
	var store core.CanvasStore

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "canvascrafters.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewStore(bucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}

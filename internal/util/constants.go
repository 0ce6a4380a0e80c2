package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
	StorageB2    = "b2"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreBolt   = "bolt"
)

const (
	MimeCSV  = "text/csv"
	MimeZip  = "application/zip"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// 翻译事件中保存的原文最大长度
const MaxLoggedTextLen = 4000

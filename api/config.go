package api

type ServerConfig struct {
	// HostServer 是組合圖片公開 URL 時使用的 base URL
	HostServer string

	Upload  UploadConfig
	Storage StorageConfig
	S3      S3Config
	DB      DBConfig
}

type UploadConfig struct {
	Folder      string // 圖片存放的資料夾(相對於儲存根目錄)，同時也是公開 URL 的路徑前綴
	MaxSize     int64  // 單一檔案的最大位元組數，0 代表不限制
	ServeStatic bool   // 是否由本服務直接提供上傳資料夾的靜態檔案
}

const (
	StorageDriverDisk = "disk"
	StorageDriverS3   = "s3"
)

type StorageConfig struct {
	Driver string
	Root   string
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Region          string
	Bucket          string
	UsePathStyle    bool
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver      string
	User        string
	Password    string
	Host        string
	Port        int
	Database    string // sqlite 時為資料庫檔案路徑
	Schema      string
	AutoMigrate bool
}

package imagestore

import (
	"bytes"
	"io"
	"mime/multipart"
)

// NewMultipartFile 將 multipart 表單中的檔案包裝成 File
func NewMultipartFile(header *multipart.FileHeader) File {
	return &multipartFile{header: header}
}

type multipartFile struct {
	header *multipart.FileHeader
}

func (f *multipartFile) Filename() string {
	return f.header.Filename
}

func (f *multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// NewBytesFile 以記憶體中的內容建立 File
func NewBytesFile(name string, content []byte) File {
	return &bytesFile{name: name, content: content}
}

type bytesFile struct {
	name    string
	content []byte
}

func (f *bytesFile) Filename() string {
	return f.name
}

func (f *bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

package port

import "context"

// KeyValueStorePort - простое хранилище ключ-значение (память или Redis).
type KeyValueStorePort interface {
	// Get возвращает found=false, если ключа нет.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

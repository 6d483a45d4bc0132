package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BOOKAPI_TEST_MODE") == "" {
			_ = os.Setenv("BOOKAPI_TEST_MODE", "1")
		}
	})
}

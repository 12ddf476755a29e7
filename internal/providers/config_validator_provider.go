package providers

import (
	"bibled/internal/structures"
	"errors"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return errors.New(v.Errors.String())
	}
	if c.conf.Cache.Enabled && c.conf.Cache.FilePath != "" && c.conf.Cache.SaveInterval <= 0 {
		return errors.New("cache.saveInterval must be positive when cache.filePath is set")
	}
	if c.conf.Search.MaxResults < 0 || c.conf.Search.MaxResults > 50 {
		return errors.New("search.maxResults must be between 0 and 50")
	}
	if c.conf.Search.Timeout < 0 {
		return errors.New("search.timeout must not be negative")
	}
	return nil
}

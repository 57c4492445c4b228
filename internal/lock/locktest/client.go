// Package locktest provides an in-memory Redis stand-in for the commands the
// lock package issues.
package locktest

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Client answers SETNX and the compare-and-delete release script. Any other
// command panics through the nil embedded Cmdable. Expirations are ignored.
type Client struct {
	redis.Cmdable

	mu     sync.Mutex
	values map[string]string
}

func NewClient() *Client {
	return &Client{values: map[string]string{}}
}

// Hold marks key as taken by token, as if another worker owned it.
func (c *Client) Hold(key, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = token
}

// Drop removes key regardless of its holder, as if its lease expired.
func (c *Client) Drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Holder returns the token stored at key.
func (c *Client) Holder(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, ok := c.values[key]
	return token, ok
}

func (c *Client) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, taken := c.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	c.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (c *Client) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.compareAndDelete(keys, args)
}

func (c *Client) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return c.compareAndDelete(keys, args)
}

func (c *Client) compareAndDelete(keys []string, args []interface{}) *redis.Cmd {
	if len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script arity: %d keys, %d args", len(keys), len(args)))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.values[keys[0]]; ok && current == fmt.Sprint(args[0]) {
		delete(c.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

// internal/di/container.go
package di

import "sync"

// Container is a minimal service registry used to assemble the application.
type Container struct {
	services map[string]interface{}
	mutex    sync.RWMutex
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{services: make(map[string]interface{})}
}

// Register stores a service instance under a name.
func (c *Container) Register(name string, service interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.services[name] = service
}

// Get returns the named service, or nil when absent.
func (c *Container) Get(name string) interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.services[name]
}

// Has reports whether a service is registered.
func (c *Container) Has(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, exists := c.services[name]
	return exists
}

// Names lists all registered service names.
func (c *Container) Names() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	return names
}

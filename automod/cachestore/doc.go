// Component for caching small string values (such as chat admin status) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory. Values are namespaced by a cache name, so several kinds of data can share one store.
package cachestore

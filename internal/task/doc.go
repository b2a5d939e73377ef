// Package task manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of deferred work like
// mastery recomputation, ensuring it doesn't block HTTP request handling and
// can recover from application restarts.
package task

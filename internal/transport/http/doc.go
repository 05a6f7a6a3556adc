// Package http implements the HTTP handlers for the analytics API. It is a
// thin layer between transport and the service packages: handlers parse and
// validate requests, delegate to a service, and render the result.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - the shared RFC 7807 handler renders all errors
//	4. No business logic - defaults and data policy live in the services
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Engine
//	                                              ↓
//	HTTP Response ← render.JSON ← Service Response
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) Operation(w http.ResponseWriter, r *http.Request) {
//	    var req OperationRequest
//	    if err := render.DecodeJSON(r.Body, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
//	        return
//	    }
//	    if err := h.validator.ValidateStruct(req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    result, err := h.service.Operation(r.Context(), req)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    render.JSON(w, r, result)
//	}
//
// Service errors flow through the error handler unmodified: the domain
// taxonomy in internal/errors already knows its HTTP mapping, so handlers
// never translate errors themselves.
package http

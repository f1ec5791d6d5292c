// Package middleware groups the Fiber middleware used by the serve command.
//
//   - rayid: assigns every request a ray id (google/uuid), stored in the
//     "ray_id" local and echoed in the X-Ray-ID header.
//   - auth: rejects requests without the configured X-API-Key.
package middleware

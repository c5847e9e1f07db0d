// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// retrying Connect, goose schema migrations bridged through the pgx stdlib
// adapter, a healthcheck probe, and small error classifiers shared by the
// data-access code.
package pg

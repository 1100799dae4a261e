// Package app groups the application core: domain models, storage
// interfaces and implementations, the lifecycle services, and the
// notification machinery.
//
// # Package Structure
//
//	internal/app/
//	├── core/               # Error taxonomy shared by all services
//	├── domain/             # Domain models (pure data structures)
//	│   ├── project/        # Projects, memberships, snapshots
//	│   ├── task/           # Tasks and comments
//	│   ├── user/           # Identities supplied by the auth layer
//	│   ├── notification/   # Notification kinds and records
//	│   └── audit/          # Append-only audit entries
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces and the Transactor contract
//	│   ├── memory/         # In-memory implementation for tests and dev
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic
//	│   ├── projects/       # Project lifecycle and progress metrics
//	│   ├── tasks/          # Task lifecycle and comments
//	│   ├── membership/     # Membership entries and role rules
//	│   ├── fanout/         # Queued job expansion into notifications
//	│   └── deadlines/      # Scheduled deadline sweep
//	├── notify/             # Delivery channels, dispatcher, webhook poster
//	├── queue/              # Job variants and the in-process worker pool
//	├── metrics/            # Prometheus collectors
//	├── system/             # Service lifecycle contract
//	└── runtime/            # Configuration-driven wiring and lifecycle
//
// # Dependency Direction
//
// Services depend on storage interfaces and the notify/queue contracts,
// never on concrete implementations. The runtime package is the only place
// where concrete stores, channels and workers are chosen and wired.
//
// # Notification Ordering
//
// Every mutating operation persists first and notifies second. Immediate
// notifications (to the directly affected user) run synchronously after
// commit; team-wide fan-out goes through the queue. A delivery failure is
// logged and never fails the originating operation.
package app

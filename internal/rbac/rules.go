package rbac

// Default role policy. Parents get read-only access to their children's
// results; teachers own authoring and grading; admin gets everything.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"submission:start",
		"submission:answer",
		"submission:submit",
		"submission:view-own",
		"user:change_password",
	},
	"parent": {
		"exam:view",
		"submission:view-own",
		"user:change_password",
	},
	"teacher": {
		"question:create",
		"question:update",
		"question:delete",
		"question:list",
		"exam:create",
		"exam:update",
		"exam:view",
		"exam:stats",
		"submission:view-all",
		"submission:grade",
		"users:bulk_upsert",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}

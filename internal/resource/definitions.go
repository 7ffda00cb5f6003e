package resource

// Имена сущностей в реестре.
const (
	Categories   = "categories"
	Products     = "products"
	Services     = "services"
	News         = "news"
	Projects     = "projects"
	Testimonials = "testimonials"
	Partners     = "partners"
	Contacts     = "contacts"
	AdminUsers   = "admin_users"
	Settings     = "settings"
)

// Статусы заявки с формы контактов.
const (
	ContactStatusNew        = "new"
	ContactStatusProcessing = "processing"
	ContactStatusCompleted  = "completed"
	ContactStatusSpam       = "spam"
)

const slugTaken = "Slug đã tồn tại"

// Роли администраторов.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

func idColumn() Column        { return Column{Name: "id", Kind: KindInt, ReadOnly: true} }
func createdAtColumn() Column { return Column{Name: "created_at", Kind: KindTime, ReadOnly: true} }
func updatedAtColumn() Column { return Column{Name: "updated_at", Kind: KindTime, ReadOnly: true} }
func viewCountColumn() Column { return Column{Name: "view_count", Kind: KindInt, ReadOnly: true} }

func activeColumn() Column {
	return Column{Name: "is_active", Kind: KindBool, Default: true}
}

func displayOrderColumn() Column {
	return Column{Name: "display_order", Kind: KindInt, Default: 0}
}

func jsonListColumn(name string) Column {
	return Column{Name: name, Kind: KindJSON, Default: []any{}}
}

func metaColumns() []Column {
	return []Column{
		{Name: "meta_title", Kind: KindString, Rules: "max=255"},
		{Name: "meta_description", Kind: KindText},
		{Name: "meta_keywords", Kind: KindString, Rules: "max=255"},
	}
}

func columns(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func isActiveFilter() Filter {
	return Filter{Param: "is_active", Mode: FilterEqual, Column: "is_active", Kind: KindBool, Scope: ScopeAdmin}
}

// Definitions возвращает свежие описания всех сущностей сайта.
func Definitions() []*Schema {
	return []*Schema{
		categoriesSchema(),
		productsSchema(),
		servicesSchema(),
		newsSchema(),
		projectsSchema(),
		testimonialsSchema(),
		partnersSchema(),
		contactsSchema(),
		adminUsersSchema(),
		settingsSchema(),
	}
}

// DefaultRegistry собирает реестр из Definitions.
func DefaultRegistry() *Registry {
	return MustNewRegistry(Definitions()...)
}

func categoriesSchema() *Schema {
	return &Schema{
		Name:  Categories,
		Label: "danh mục",
		Table: "categories",
		Alias: "c",
		Columns: columns([]Column{
			idColumn(),
			{Name: "name", Kind: KindString, Rules: "max=255"},
			{Name: "slug", Kind: KindString, Rules: "max=255"},
			{Name: "description", Kind: KindText},
			{Name: "full_content", Kind: KindText},
			{Name: "parent_id", Kind: KindInt},
			{Name: "image_url", Kind: KindString, Rules: "max=500"},
			displayOrderColumn(),
			activeColumn(),
			createdAtColumn(),
			updatedAtColumn(),
		}),
		RequiredOnCreate: []string{"name", "slug"},
		VisibilityColumn: "is_active",
		SlugColumn:       "slug",
		DuplicateMessage: slugTaken,
		Filters: []Filter{
			{Param: "parent_id", Mode: FilterEqual, Column: "parent_id", Kind: KindInt, Scope: ScopeBoth},
			isActiveFilter(),
			{Param: "search", Mode: FilterSearch, Columns: []string{"name", "description"}, Scope: ScopeAdmin},
		},
		OrderBy: []OrderTerm{{Column: "display_order"}, {Column: "id"}},
		Dependents: []Dependent{
			{Table: "products", Column: "category_id", Reason: "Không thể xóa danh mục này vì có %d sản phẩm đang sử dụng"},
			{Table: "categories", Column: "parent_id", Reason: "Không thể xóa danh mục này vì có %d danh mục con"},
			{Table: "services", Column: "category_id", Reason: "Không thể xóa danh mục này vì có %d dịch vụ đang sử dụng"},
		},
		DefaultLimit: 100,
		MaxLimit:     100,
	}
}

func productsSchema() *Schema {
	return &Schema{
		Name:  Products,
		Label: "sản phẩm",
		Table: "products",
		Alias: "p",
		Columns: columns([]Column{
			idColumn(),
			{Name: "category_id", Kind: KindInt},
			{Name: "name", Kind: KindString, Rules: "max=255"},
			{Name: "slug", Kind: KindString, Rules: "max=255"},
			{Name: "short_description", Kind: KindText},
			{Name: "full_description", Kind: KindText},
			{Name: "price", Kind: KindFloat, Default: 0, Rules: "gte=0"},
			{Name: "sale_price", Kind: KindFloat, Rules: "gte=0"},
			{Name: "unit", Kind: KindString, Default: "tấm", Rules: "max=50"},
			{Name: "sku", Kind: KindString, Rules: "max=100"},
			{Name: "stock_quantity", Kind: KindInt, Default: 0, Rules: "gte=0"},
			{Name: "main_image", Kind: KindString, Rules: "max=500"},
			{Name: "image2", Kind: KindString, Rules: "max=500"},
			jsonListColumn("gallery_images"),
			{Name: "specifications", Kind: KindJSON, Default: map[string]any{}},
			{Name: "is_featured", Kind: KindBool, Default: false},
			{Name: "is_bestseller", Kind: KindBool, Default: false},
			{Name: "featured_in_header", Kind: KindBool, Default: false},
			displayOrderColumn(),
		}, metaColumns(), []Column{
			{Name: "notes", Kind: KindText},
			activeColumn(),
			viewCountColumn(),
			createdAtColumn(),
			updatedAtColumn(),
			{Name: "category_name", Kind: KindString, ReadOnly: true, Virtual: true},
			{Name: "category_slug", Kind: KindString, ReadOnly: true, Virtual: true},
		}),
		RequiredOnCreate: []string{"category_id", "name", "slug"},
		VisibilityColumn: "is_active",
		SlugColumn:       "slug",
		DuplicateMessage: slugTaken,
		ViewCounter:      true,
		Filters: []Filter{
			{Param: "category_id", Mode: FilterEqual, Column: "category_id", Kind: KindInt, Scope: ScopeBoth},
			{Param: "is_featured", Mode: FilterEqual, Column: "is_featured", Kind: KindBool, Scope: ScopeBoth},
			{Param: "is_bestseller", Mode: FilterEqual, Column: "is_bestseller", Kind: KindBool, Scope: ScopeBoth},
			{Param: "featured_in_header", Mode: FilterEqual, Column: "featured_in_header", Kind: KindBool, Scope: ScopeBoth},
			{Param: "search", Mode: FilterSearch, Columns: []string{"name", "short_description"}, Scope: ScopeBoth},
			isActiveFilter(),
		},
		OrderBy: []OrderTerm{{Column: "display_order"}, {Column: "created_at", Desc: true}, {Column: "id"}},
		Joins: []Join{{
			Clause:  "LEFT JOIN categories c ON p.category_id = c.id",
			Columns: []string{"c.name AS category_name", "c.slug AS category_slug"},
		}},
		DefaultLimit: 12,
		MaxLimit:     100,
	}
}

func servicesSchema() *Schema {
	return &Schema{
		Name:  Services,
		Label: "dịch vụ",
		Table: "services",
		Alias: "s",
		Columns: columns([]Column{
			idColumn(),
			{Name: "category_id", Kind: KindInt},
			{Name: "name", Kind: KindString, Rules: "max=255"},
			{Name: "slug", Kind: KindString, Rules: "max=255"},
			{Name: "short_description", Kind: KindText},
			{Name: "full_description", Kind: KindText},
			{Name: "icon", Kind: KindString, Rules: "max=255"},
			{Name: "main_image", Kind: KindString, Rules: "max=500"},
			jsonListColumn("gallery_images"),
			jsonListColumn("features"),
			{Name: "is_featured", Kind: KindBool, Default: false},
			displayOrderColumn(),
		}, metaColumns(), []Column{
			activeColumn(),
			viewCountColumn(),
			createdAtColumn(),
			updatedAtColumn(),
			{Name: "category_name", Kind: KindString, ReadOnly: true, Virtual: true},
		}),
		RequiredOnCreate: []string{"name", "slug"},
		VisibilityColumn: "is_active",
		SlugColumn:       "slug",
		DuplicateMessage: slugTaken,
		ViewCounter:      true,
		Filters: []Filter{
			{Param: "is_featured", Mode: FilterEqual, Column: "is_featured", Kind: KindBool, Scope: ScopeBoth},
			{Param: "category_id", Mode: FilterEqual, Column: "category_id", Kind: KindInt, Scope: ScopeBoth},
			isActiveFilter(),
			{Param: "search", Mode: FilterSearch, Columns: []string{"name", "short_description"}, Scope: ScopeAdmin},
		},
		OrderBy: []OrderTerm{{Column: "display_order"}, {Column: "created_at", Desc: true}, {Column: "id"}},
		Joins: []Join{{
			Clause:  "LEFT JOIN categories c ON s.category_id = c.id",
			Columns: []string{"c.name AS category_name"},
		}},
		DefaultLimit: 10,
		MaxLimit:     100,
	}
}

func newsSchema() *Schema {
	return &Schema{
		Name:  News,
		Label: "tin tức",
		Table: "news",
		Alias: "n",
		Columns: columns([]Column{
			idColumn(),
			{Name: "title", Kind: KindString, Rules: "max=255"},
			{Name: "slug", Kind: KindString, Rules: "max=255"},
			{Name: "excerpt", Kind: KindText},
			{Name: "content", Kind: KindText},
			{Name: "author_id", Kind: KindInt},
			{Name: "featured_image", Kind: KindString, Rules: "max=500"},
			jsonListColumn("gallery_images"),
			jsonListColumn("tags"),
			{Name: "is_featured", Kind: KindBool, Default: false},
			{Name: "is_published", Kind: KindBool, Default: true},
			{Name: "published_at", Kind: KindTime, DefaultNow: true},
		}, metaColumns(), []Column{
			viewCountColumn(),
			createdAtColumn(),
			updatedAtColumn(),
			{Name: "author_name", Kind: KindString, ReadOnly: true, Virtual: true},
		}),
		Aliases: []Alias{
			{Stored: "featured_image", Exposed: "image_url"},
			{Stored: "excerpt", Exposed: "short_description"},
		},
		RequiredOnCreate: []string{"title", "slug", "content"},
		VisibilityColumn: "is_published",
		SlugColumn:       "slug",
		DuplicateMessage: slugTaken,
		ViewCounter:      true,
		Filters: []Filter{
			{Param: "is_featured", Mode: FilterEqual, Column: "is_featured", Kind: KindBool, Scope: ScopeBoth},
			{Param: "search", Mode: FilterSearch, Columns: []string{"title", "excerpt"}, Scope: ScopeBoth},
			{Param: "is_published", Mode: FilterEqual, Column: "is_published", Kind: KindBool, Scope: ScopeAdmin},
		},
		OrderBy: []OrderTerm{{Column: "published_at", Desc: true}, {Column: "created_at", Desc: true}, {Column: "id"}},
		Joins: []Join{{
			Clause:  "LEFT JOIN admin_users a ON n.author_id = a.id",
			Columns: []string{"a.full_name AS author_name"},
		}},
		DefaultLimit: 10,
		MaxLimit:     100,
	}
}

func projectsSchema() *Schema {
	return &Schema{
		Name:  Projects,
		Label: "dự án",
		Table: "projects",
		Alias: "pr",
		Columns: []Column{
			idColumn(),
			{Name: "name", Kind: KindString, Rules: "max=255"},
			{Name: "slug", Kind: KindString, Rules: "max=255"},
			{Name: "client_name", Kind: KindString, Rules: "max=255"},
			{Name: "location", Kind: KindString, Rules: "max=255"},
			{Name: "completion_date", Kind: KindTime},
			{Name: "short_description", Kind: KindText},
			{Name: "full_description", Kind: KindText},
			{Name: "featured_image", Kind: KindString, Rules: "max=500"},
			jsonListColumn("gallery_images"),
			jsonListColumn("services_used"),
			{Name: "is_featured", Kind: KindBool, Default: false},
			displayOrderColumn(),
			activeColumn(),
			createdAtColumn(),
			updatedAtColumn(),
		},
		Aliases: []Alias{
			{Stored: "featured_image", Exposed: "image_url"},
			{Stored: "client_name", Exposed: "client"},
			{Stored: "completion_date", Exposed: "completed_date"},
			{Stored: "short_description", Exposed: "description"},
		},
		RequiredOnCreate: []string{"name"},
		VisibilityColumn: "is_active",
		SlugColumn:       "slug",
		DuplicateMessage: slugTaken,
		SlugSource:       "name",
		Filters: []Filter{
			{Param: "is_featured", Mode: FilterEqual, Column: "is_featured", Kind: KindBool, Scope: ScopeBoth},
			isActiveFilter(),
		},
		OrderBy:      []OrderTerm{{Column: "display_order"}, {Column: "completion_date", Desc: true}, {Column: "id"}},
		DefaultLimit: 50,
		MaxLimit:     100,
	}
}

func testimonialsSchema() *Schema {
	return &Schema{
		Name:  Testimonials,
		Label: "đánh giá",
		Table: "testimonials",
		Alias: "t",
		Columns: []Column{
			idColumn(),
			{Name: "client_name", Kind: KindString, Rules: "max=255"},
			{Name: "position", Kind: KindString, Rules: "max=255"},
			{Name: "company_name", Kind: KindString, Rules: "max=255"},
			{Name: "avatar", Kind: KindString, Rules: "max=500"},
			{Name: "rating", Kind: KindInt, Default: 5, Rules: "min=1,max=5"},
			{Name: "content", Kind: KindText},
			displayOrderColumn(),
			activeColumn(),
			createdAtColumn(),
		},
		Aliases: []Alias{
			{Stored: "client_name", Exposed: "customer_name"},
			{Stored: "company_name", Exposed: "company"},
			{Stored: "avatar", Exposed: "avatar_url"},
		},
		RequiredOnCreate: []string{"client_name", "content"},
		VisibilityColumn: "is_active",
		Filters:          []Filter{isActiveFilter()},
		OrderBy:          []OrderTerm{{Column: "display_order"}, {Column: "created_at", Desc: true}, {Column: "id"}},
		PublicCreate: &CreateRule{
			Allowed:  []string{"client_name", "rating", "content"},
			Required: []string{"client_name", "rating", "content"},
		},
		DefaultLimit: 50,
		MaxLimit:     100,
	}
}

func partnersSchema() *Schema {
	return &Schema{
		Name:  Partners,
		Label: "đối tác",
		Table: "partners",
		Alias: "pt",
		Columns: []Column{
			idColumn(),
			{Name: "name", Kind: KindString, Rules: "max=255"},
			{Name: "logo", Kind: KindString, Rules: "max=500"},
			{Name: "website", Kind: KindString, Rules: "max=500"},
			{Name: "description", Kind: KindText},
			displayOrderColumn(),
			activeColumn(),
			createdAtColumn(),
		},
		Aliases:          []Alias{{Stored: "logo", Exposed: "logo_url"}},
		RequiredOnCreate: []string{"name"},
		VisibilityColumn: "is_active",
		Filters:          []Filter{isActiveFilter()},
		OrderBy:          []OrderTerm{{Column: "display_order"}, {Column: "name"}, {Column: "id"}},
		DefaultLimit:     100,
		MaxLimit:         100,
	}
}

func contactsSchema() *Schema {
	return &Schema{
		Name:  Contacts,
		Label: "liên hệ",
		Table: "contact_submissions",
		Alias: "cs",
		Columns: []Column{
			idColumn(),
			{Name: "full_name", Kind: KindString, Rules: "max=255"},
			{Name: "email", Kind: KindString, Rules: "email,max=255"},
			{Name: "phone", Kind: KindString, Rules: "max=50"},
			{Name: "subject", Kind: KindString, Rules: "max=255"},
			{Name: "message", Kind: KindText},
			{Name: "company_name", Kind: KindString, Rules: "max=255"},
			{Name: "address", Kind: KindString, Rules: "max=500"},
			{Name: "status", Kind: KindString, ReadOnly: true, Default: ContactStatusNew},
			{Name: "is_read", Kind: KindBool, ReadOnly: true, Default: false},
			{Name: "admin_note", Kind: KindText, ReadOnly: true},
			{Name: "ip_address", Kind: KindString, ReadOnly: true},
			{Name: "user_agent", Kind: KindText, ReadOnly: true},
			createdAtColumn(),
			updatedAtColumn(),
		},
		RequiredOnCreate: []string{"full_name", "email", "phone", "message"},
		Filters: []Filter{
			{Param: "status", Mode: FilterEqual, Column: "status", Kind: KindString, Scope: ScopeAdmin},
			{Param: "is_read", Mode: FilterEqual, Column: "is_read", Kind: KindBool, Scope: ScopeAdmin},
			{Param: "search", Mode: FilterSearch, Columns: []string{"full_name", "email", "phone"}, Scope: ScopeAdmin},
		},
		OrderBy: []OrderTerm{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
		PublicCreate: &CreateRule{
			Allowed:  []string{"full_name", "email", "phone", "subject", "message", "company_name", "address"},
			Required: []string{"full_name", "email", "phone", "message"},
		},
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

func adminUsersSchema() *Schema {
	return &Schema{
		Name:  AdminUsers,
		Label: "tài khoản",
		Table: "admin_users",
		Alias: "u",
		Columns: []Column{
			idColumn(),
			{Name: "username", Kind: KindString, Rules: "min=3,max=50"},
			{Name: "email", Kind: KindString, Rules: "email,max=255"},
			{Name: "password", Kind: KindString, Hidden: true},
			{Name: "full_name", Kind: KindString, Rules: "max=255"},
			{Name: "role", Kind: KindString, Default: RoleEditor, Rules: "oneof=admin editor"},
			activeColumn(),
			{Name: "last_login", Kind: KindTime, ReadOnly: true},
			createdAtColumn(),
		},
		RequiredOnCreate: []string{"username", "email", "password"},
		DuplicateMessage: "Tên đăng nhập hoặc email đã tồn tại",
		VisibilityColumn: "is_active",
		Filters: []Filter{
			{Param: "role", Mode: FilterEqual, Column: "role", Kind: KindString, Scope: ScopeAdmin},
			isActiveFilter(),
		},
		OrderBy:      []OrderTerm{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
		DefaultLimit: 50,
		MaxLimit:     100,
	}
}

func settingsSchema() *Schema {
	return &Schema{
		Name:  Settings,
		Label: "cài đặt",
		Table: "settings",
		Alias: "st",
		Columns: []Column{
			idColumn(),
			{Name: "setting_key", Kind: KindString, Rules: "max=100"},
			{Name: "setting_value", Kind: KindText},
			{Name: "description", Kind: KindString, Rules: "max=255"},
			updatedAtColumn(),
		},
		RequiredOnCreate: []string{"setting_key"},
		DuplicateMessage: "Khóa cài đặt đã tồn tại",
		OrderBy:          []OrderTerm{{Column: "setting_key"}},
		DefaultLimit:     100,
		MaxLimit:         1000,
	}
}

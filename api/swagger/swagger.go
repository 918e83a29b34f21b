package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Calendar Școlar API",
        "description": "School calendar feeds (ICS) for Romanian counties and the admin API behind them.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Feeds", "description": "ICS subscriptions and printable exports"},
        {"name": "Public", "description": "County listings, banners and click tracking"},
        {"name": "Events", "description": "Official calendar entries"},
        {"name": "Promos", "description": "Sponsored banners and feed entries"},
        {"name": "Counties", "description": "Counties, vacation groups and periods"},
        {"name": "Settings", "description": "Site-wide options and cache control"},
        {"name": "Subscribers", "description": "Subscription statistics and premium links"},
        {"name": "Ops", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness probe pinging Postgres and Redis",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is down"}
                }
            }
        },
        "/api/calendar": {
            "get": {
                "tags": ["Feeds"],
                "summary": "National ICS feed",
                "produces": ["text/calendar"],
                "responses": {"200": {"description": "calendar-scolar.ics"}}
            }
        },
        "/api/calendar/county/{slug}": {
            "get": {
                "tags": ["Feeds"],
                "summary": "County ICS feed",
                "produces": ["text/calendar"],
                "parameters": [{"$ref": "#/parameters/Slug"}],
                "responses": {
                    "200": {"description": "Feed with national events, group vacations and promos"},
                    "400": {"$ref": "#/responses/Error"},
                    "404": {"$ref": "#/responses/Error"}
                }
            }
        },
        "/api/calendar/county/{slug}/export.csv": {
            "get": {
                "tags": ["Feeds"],
                "summary": "County calendar as CSV",
                "produces": ["text/csv"],
                "parameters": [{"$ref": "#/parameters/Slug"}],
                "responses": {"200": {"description": "calendar-scolar-{slug}.csv"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/calendar/county/{slug}/export.pdf": {
            "get": {
                "tags": ["Feeds"],
                "summary": "County calendar as PDF",
                "produces": ["application/pdf"],
                "parameters": [{"$ref": "#/parameters/Slug"}],
                "responses": {"200": {"description": "calendar-scolar-{slug}.pdf"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/calendar/premium/{token}": {
            "get": {
                "tags": ["Feeds"],
                "summary": "Ad-free feed for a signed subscriber token",
                "produces": ["text/calendar"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "calendar-scolar-premium.ics"}, "401": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/counties": {
            "get": {
                "tags": ["Public"],
                "summary": "Active counties",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/counties/{slug}": {
            "get": {
                "tags": ["Public"],
                "summary": "County with its vacation group and periods",
                "parameters": [{"$ref": "#/parameters/Slug"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/promos/banners": {
            "get": {
                "tags": ["Public"],
                "summary": "Running banner promos",
                "parameters": [{"name": "county", "in": "query", "type": "string", "description": "county slug"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/promos/{id}/click": {
            "post": {
                "tags": ["Public"],
                "summary": "Count a promo click and return its link",
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/track-subscription-action": {
            "post": {
                "tags": ["Public"],
                "summary": "Record a subscribe button click",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrackActionRequest"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/me": {
            "get": {
                "tags": ["Ops"],
                "summary": "Current admin identity",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "401": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "county", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/Limit"}
                ],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}],
                "responses": {"201": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            },
            "put": {
                "tags": ["Events"],
                "summary": "Update event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Toggle event active flag",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event (ADMIN)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Deleted"}, "403": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/promos": {
            "get": {
                "tags": ["Promos"],
                "summary": "List promos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "banner", "in": "query", "type": "boolean"},
                    {"name": "calendar", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/Limit"}
                ],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "post": {
                "tags": ["Promos"],
                "summary": "Create promo",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoRequest"}}],
                "responses": {"201": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/promos/{id}": {
            "get": {
                "tags": ["Promos"],
                "summary": "Get promo",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            },
            "put": {
                "tags": ["Promos"],
                "summary": "Update promo",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoRequest"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            },
            "patch": {
                "tags": ["Promos"],
                "summary": "Toggle promo active flag",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "delete": {
                "tags": ["Promos"],
                "summary": "Delete promo (ADMIN)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Deleted"}, "403": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/counties": {
            "get": {
                "tags": ["Counties"],
                "summary": "List counties",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/counties/{slug}": {
            "get": {
                "tags": ["Counties"],
                "summary": "County detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/Slug"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/counties/{id}": {
            "put": {
                "tags": ["Counties"],
                "summary": "Update county",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            },
            "patch": {
                "tags": ["Counties"],
                "summary": "Toggle county active flag",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/groups": {
            "get": {
                "tags": ["Counties"],
                "summary": "Vacation groups with county counts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/groups/{id}": {
            "get": {
                "tags": ["Counties"],
                "summary": "Get vacation group",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"$ref": "#/responses/Error"}}
            },
            "put": {
                "tags": ["Counties"],
                "summary": "Rename or recolor a group",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/groups/{id}/periods": {
            "get": {
                "tags": ["Counties"],
                "summary": "Group vacation periods",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "school_year", "in": "query", "type": "string"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/periods": {
            "post": {
                "tags": ["Counties"],
                "summary": "Create vacation period",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodRequest"}}],
                "responses": {"201": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/periods/{id}": {
            "put": {
                "tags": ["Counties"],
                "summary": "Update vacation period",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodRequest"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            },
            "delete": {
                "tags": ["Counties"],
                "summary": "Delete vacation period",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get settings",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update settings",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/cache/invalidate": {
            "post": {
                "tags": ["Settings"],
                "summary": "Drop every cached calendar projection",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/subscribers": {
            "get": {
                "tags": ["Subscribers"],
                "summary": "Feed subscriptions",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "county", "in": "query", "type": "string"}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/subscribers/stats": {
            "get": {
                "tags": ["Subscribers"],
                "summary": "Subscription totals by county, client and action",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/subscribers/actions": {
            "get": {
                "tags": ["Subscribers"],
                "summary": "Recent subscribe button clicks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "since", "in": "query", "type": "string", "format": "date"},
                    {"$ref": "#/parameters/Limit"}
                ],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/admin/premium-links": {
            "post": {
                "tags": ["Subscribers"],
                "summary": "Issue a signed premium feed URL",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PremiumLinkRequest"}}],
                "responses": {"201": {"$ref": "#/responses/Envelope"}, "400": {"$ref": "#/responses/Error"}}
            }
        },
        "/api/v1/admin/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Request and cache counters snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        }
    },
    "parameters": {
        "ID": {"name": "id", "in": "path", "required": true, "type": "string"},
        "Slug": {"name": "slug", "in": "path", "required": true, "type": "string"},
        "Page": {"name": "page", "in": "query", "type": "integer", "default": 1},
        "Limit": {"name": "limit", "in": "query", "type": "integer", "default": 50}
    },
    "responses": {
        "Envelope": {"description": "Success", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
        "Error": {"description": "Error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
    },
    "definitions": {
        "TrackActionRequest": {
            "type": "object",
            "required": ["countyId", "actionType"],
            "properties": {
                "countyId": {"type": "string", "format": "uuid"},
                "actionType": {"type": "string", "enum": ["google", "apple", "outlook", "copy_url"]}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["title", "type", "start_date"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string", "maxLength": 5000},
                "type": {"type": "string", "enum": ["VACATION", "HOLIDAY", "SEMESTER_START", "SEMESTER_END", "LAST_DAY"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "image_url": {"type": "string"},
                "background_color": {"type": "string"},
                "active": {"type": "boolean"},
                "county_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}}
            }
        },
        "PromoRequest": {
            "type": "object",
            "required": ["title", "start_date", "end_date"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string"},
                "image_url": {"type": "string"},
                "link": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "background_color": {"type": "string"},
                "show_on_calendar": {"type": "boolean"},
                "show_as_banner": {"type": "boolean"},
                "active": {"type": "boolean"},
                "priority": {"type": "integer", "minimum": 0, "maximum": 100},
                "county_ids": {"type": "array", "items": {"type": "string", "format": "uuid"}}
            }
        },
        "PeriodRequest": {
            "type": "object",
            "required": ["group_id", "name", "type", "start_date", "end_date", "school_year"],
            "properties": {
                "group_id": {"type": "string", "format": "uuid"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["INTERSEMESTER", "WINTER", "SPRING", "SUMMER", "OTHER"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "school_year": {"type": "string"}
            }
        },
        "PremiumLinkRequest": {
            "type": "object",
            "required": ["subscriber"],
            "properties": {
                "subscriber": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

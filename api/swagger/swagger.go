package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Records API",
        "description": "Course and per-semester dataset management service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course definitions and assessment breakdowns"},
        {"name": "Datasets", "description": "Per-semester tabular datasets"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/addCourse": {
            "post": {
                "tags": ["Courses"],
                "summary": "Add course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CourseAck"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/updateCourse/{id}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Update course (full overwrite of name, code, assessments)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/CourseAck"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List all courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Course"}}},
                    "400": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Course"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/courses/assessments/{courseId}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get assessment names for a course",
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AssessmentNames"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/MessageBody"}}
                }
            }
        },
        "/api/deleteCourse/{id}": {
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/add-dataset": {
            "put": {
                "tags": ["Datasets"],
                "summary": "Add or merge a per-semester dataset",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddDatasetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Added or merged", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "400": {"description": "Missing required fields", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Duplicate academic year or unconfirmed merge", "schema": {"$ref": "#/definitions/MessageBody"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/datasets/filter": {
            "get": {
                "tags": ["Datasets"],
                "summary": "Filter datasets by course, semester and academic year",
                "parameters": [
                    {"name": "course", "in": "query", "type": "string"},
                    {"name": "sem", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/DatasetWithCourse"}}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/datasets/{id}/export": {
            "get": {
                "tags": ["Datasets"],
                "summary": "Export a dataset as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered dataset"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Dataset not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Assessment": {
            "type": "object",
            "properties": {
                "assessment": {"type": "string"},
                "mark": {"type": "number"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "assessments": {"type": "array", "items": {"$ref": "#/definitions/Assessment"}},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "assessments": {"type": "array", "items": {"$ref": "#/definitions/Assessment"}}
            }
        },
        "CourseAck": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "course": {"$ref": "#/definitions/Course"}
            }
        },
        "AssessmentNames": {
            "type": "object",
            "properties": {
                "assessments": {"type": "array", "items": {"type": "string"}}
            }
        },
        "AddDatasetRequest": {
            "type": "object",
            "required": ["course", "sem", "academicYear", "columns", "data"],
            "properties": {
                "course": {"type": "string"},
                "sem": {"type": "string"},
                "academicYear": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "data": {"type": "array", "items": {"type": "array", "items": {}}},
                "replace": {"type": "boolean"},
                "concat": {"type": "boolean"}
            }
        },
        "DatasetWithCourse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "course": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "name": {"type": "string"}
                    }
                },
                "sem": {"type": "string"},
                "academicYear": {"type": "array", "items": {"type": "string"}},
                "columns": {"type": "array", "items": {"type": "string"}},
                "data": {"type": "array", "items": {"type": "array", "items": {}}},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "MessageBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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

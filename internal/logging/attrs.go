package logging

import "log/slog"

func WorkflowID(id string) slog.Attr {
	return slog.String("workflow_id", id)
}

func InstanceID(id string) slog.Attr {
	return slog.String("instance_id", id)
}

func TaskID(id string) slog.Attr {
	return slog.String("task_id", id)
}

func Topic(topic string) slog.Attr {
	return slog.String("topic", topic)
}

func URL(url string) slog.Attr {
	return slog.String("url", url)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

package mqtt

import "fmt"

func TopicClassifyRequests(prefix string) string {
	return fmt.Sprintf("%s/classify/+", prefix)
}

func TopicResult(prefix, requestID string) string {
	return fmt.Sprintf("%s/result/%s", prefix, requestID)
}

func TopicEvents(prefix string) string {
	return fmt.Sprintf("%s/events", prefix)
}

func TopicOnline(prefix, clientID string) string {
	return fmt.Sprintf("%s/online/%s", prefix, clientID)
}
